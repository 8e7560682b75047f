// seccage is a kernel-enforced process sandbox launcher.
//
// It loads a named JSON security profile, compiles its syscall policy into
// a classic BPF seccomp filter, assembles a mount namespace and capability
// set around a target program, and execs that program under the filter.
package main

import (
	"fmt"
	"os"

	"seccage/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
