// Package launcher implements the per-drive prompt role: it shows the
// inserted drive, collects the subject selection and sync mode, and hands a
// complete job to the worker role.
package launcher
