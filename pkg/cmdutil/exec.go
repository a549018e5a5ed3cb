// Copyright 2023 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package cmdutil

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// CommandTTY returns a command attached to this process's stdio, running with
// env as its complete environment.
func CommandTTY(ctx context.Context, env []string, name string, arg ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// ExitCode returns the exit status carried by err, or -1 when err did not
// come from a process that exited.
func ExitCode(err error) int {
	exitErr := &exec.ExitError{}
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
