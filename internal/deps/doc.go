// Package deps checks the external programs and folders drivesync needs.
package deps
