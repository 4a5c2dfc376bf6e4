//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplicationExit(t *testing.T) {
	t.Parallel()
	tf := NewSession(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	err = tf.StartApp()
	require.NoError(t, err, "Failed to start app")

	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.SeePlain("autosearch"), "Should show the title")

	done := make(chan error, 1)
	go func() {
		done <- tf.cmd.Wait()
	}()

	require.NoError(t, tf.SendCtrlC())

	select {
	case exitErr := <-done:
		if exitErr != nil {
			t.Logf("Process exited with ctrl+c (exit code: %v)", exitErr)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Application did not exit after ctrl+c")
	}
}

func TestQuitKeyOnlyWhenBlurred(t *testing.T) {
	t.Parallel()
	tf := NewSession(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")

	done := make(chan error, 1)
	go func() {
		done <- tf.cmd.Wait()
	}()

	// Typed into the search box while focused
	require.NoError(t, tf.Quit())
	select {
	case <-done:
		t.Fatal("q quit while the search box had focus")
	case <-time.After(500 * time.Millisecond):
	}

	require.NoError(t, tf.Esc())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, tf.Quit())

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Application did not exit after q")
	}
}
