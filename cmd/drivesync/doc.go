// Package main hosts the drivesync CLI.
//
// One binary serves every role. `drivesync monitor` watches for inserted
// drives and spawns `drivesync launcher -- <drive>`, which asks what to copy
// and spawns `drivesync worker -- <job tokens>`. Each role holds its own
// instance lock. The remaining commands inspect configuration, history,
// dependencies and the volume table.
package main
