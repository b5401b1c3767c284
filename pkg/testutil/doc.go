// Package testutil provides filesystem fixtures shared by uklient's tests.
// Every helper takes an afero.Fs so the same fixture works on a MemMapFs and
// on the real filesystem below t.TempDir().
package testutil
