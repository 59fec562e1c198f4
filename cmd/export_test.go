package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// createTestRootCmd creates a fresh root command holding the given subcommands.
// Package-level flag variables are reset so earlier tests cannot leak into this one.
func createTestRootCmd(cmds ...*cobra.Command) *cobra.Command {
	resetFlags()

	testRootCmd := &cobra.Command{Use: "rgit"}
	testRootCmd.AddCommand(cmds...)
	return testRootCmd
}

// resetFlags restores every subcommand flag to its default and clears its changed
// state, which cobra consults for required and mutually exclusive flags.
func resetFlags() {
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(func(flag *pflag.Flag) {
			flag.Value.Set(flag.DefValue)
			flag.Changed = false
		})
	}
}

// captureStdout returns command stdout output as string.
func captureStdout(cmd *cobra.Command) *bytes.Buffer {
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	return &stdout
}

// captureStderr returns command stderr output as string.
func captureStderr(cmd *cobra.Command) *bytes.Buffer {
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	return &stderr
}

// runCommand executes args against a fresh root holding cmd and returns trimmed stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	testRootCmd := createTestRootCmd(cmd)
	stdout := captureStdout(testRootCmd)
	captureStderr(testRootCmd)
	testRootCmd.SetArgs(args)

	err := testRootCmd.Execute()
	return strings.TrimSpace(stdout.String()), err
}

// mustRun is runCommand that fails the test on error.
func mustRun(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()

	out, err := runCommand(t, cmd, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

// setupInitializedRepo creates a fully initialized repository and changes into it.
func setupInitializedRepo(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	changeToRepoDir(t, repoPath)
	mustRun(t, initCmd, "init")
	return repoPath
}

// changeToRepoDir changes working directory to repo path and registers cleanup.
func changeToRepoDir(t *testing.T, repoPath string) {
	t.Helper()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	if err := os.Chdir(repoPath); err != nil {
		t.Fatalf("Failed to change to directory %s: %v", repoPath, err)
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
	})
}
