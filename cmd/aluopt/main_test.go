package main

import (
	"bytes"
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/aluopt"
	"github.com/tetratelabs/aluopt/internal/version"
)

func TestOptimize(t *testing.T) {
	tests := []struct {
		name       string
		aluoptOpts []string
		expected   []string
	}{
		{
			name: "target of the program",
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_mad_f32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
		{
			name:       "gen",
			aluoptOpts: []string{"-gen=gfx10.3", "-wave-size=32", "-validate"},
			expected: []string{
				"%1:v1, %2:v1, %3:v1 = p_startpgm",
				"%5:v1 = v_fma_f32 %1, %2, %3",
				"p_unit_test %5",
			},
		},
	}

	for _, tc := range tests {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"optimize"}, tt.aluoptOpts...)
			args = append(args, "testdata/mul_add.yaml")
			exitCode, stdOut, stdErr := runMain(t, args)
			require.Equal(t, 0, exitCode, stdErr)
			require.Equal(t, "", stdErr)

			p, err := aluopt.LoadProgram([]byte(stdOut))
			require.NoError(t, err)
			require.Equal(t, tt.expected, p.Instructions(0))
		})
	}
}

func TestOptimize_log(t *testing.T) {
	exitCode, _, stdErr := runMain(t, []string{"optimize", "-log=combine,select", "testdata/mul_add.yaml"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdErr, "select: removed %4:v1 = v_mul_f32 %1, %2\n")
	require.Contains(t, stdErr, "==== after combine ====\n")
	require.NotContains(t, stdErr, "==== after label ====")
}

func TestFmt(t *testing.T) {
	exitCode, stdOut, stdErr := runMain(t, []string{"fmt", "testdata/mul_add.yaml"})
	require.Equal(t, 0, exitCode, stdErr)

	p, err := aluopt.LoadProgram([]byte(stdOut))
	require.NoError(t, err)
	require.Equal(t, []string{
		"%1:v1, %2:v1, %3:v1 = p_startpgm",
		"%4:v1 = v_mul_f32 %1, %2",
		"%5:v1 = v_add_f32 %4, %3",
		"p_unit_test %5",
	}, p.Instructions(0))
}

func TestVersion(t *testing.T) {
	exitCode, stdOut, _ := runMain(t, []string{"version"})
	require.Equal(t, 0, exitCode)
	require.Equal(t, version.GetAluoptVersion()+"\n", stdOut)
}

func TestHelp(t *testing.T) {
	exitCode, _, stdErr := runMain(t, []string{"-h"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdErr, "aluopt CLI\n\nUsage:")
}

func TestErrors(t *testing.T) {
	tests := []struct {
		message string
		args    []string
	}{
		{
			message: "invalid command",
			args:    []string{"link"},
		},
		{
			message: "missing path to program file",
			args:    []string{"optimize"},
		},
		{
			message: "error reading program",
			args:    []string{"optimize", "non-existent.yaml"},
		},
		{
			message: "error loading program",
			args:    []string{"fmt", "testdata/bad_opcode.yaml"},
		},
		{
			message: "error optimizing program: unknown generation \"gfx5\"",
			args:    []string{"optimize", "-gen=gfx5", "testdata/mul_add.yaml"},
		},
	}

	for _, tc := range tests {
		tt := tc
		t.Run(tt.message, func(t *testing.T) {
			exitCode, _, stdErr := runMain(t, tt.args)

			require.Equal(t, 1, exitCode)
			require.Contains(t, stdErr, tt.message)
		})
	}
}

func runMain(t *testing.T, args []string) (int, string, string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() {
		os.Args = oldArgs
	})
	os.Args = append([]string{"aluopt"}, args...)

	var exitCode int
	stdOut := &bytes.Buffer{}
	stdErr := &bytes.Buffer{}
	var exited bool
	func() {
		defer func() {
			if r := recover(); r != nil {
				exited = true
			}
		}()
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
		doMain(stdOut, stdErr, func(code int) {
			exitCode = code
			panic(code)
		})
	}()

	require.True(t, exited)

	return exitCode, stdOut.String(), stdErr.String()
}
