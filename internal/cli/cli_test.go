package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/report"
	"github.com/ralt/rpmtrust/internal/session"
	"github.com/ralt/rpmtrust/internal/session/sessiontest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against driver and returns stdout
func execute(t *testing.T, driver *sessiontest.Driver, args ...string) (string, error) {
	t.Helper()

	orig := newDriver
	newDriver = func(*models.Config) session.Driver { return driver }
	t.Cleanup(func() { newDriver = orig })

	for _, key := range []string{"RPMTRUST_PASSPHRASE", "RPMTRUST_SIGNER", "RPMTRUST_DBPATH"} {
		if _, ok := os.LookupEnv(key); ok {
			t.Setenv(key, "")
		}
	}

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestListKeys(t *testing.T) {
	driver := sessiontest.New().Respond("gpg-pubkey-abcd1234-5f5f5f5f\ngpg-pubkey-ef001122-6a6a6a6a\n", 0)

	out, err := execute(t, driver, "list-keys")
	require.NoError(t, err)
	assert.Equal(t, "gpg-pubkey-abcd1234-5f5f5f5f\ngpg-pubkey-ef001122-6a6a6a6a\n", out)
}

func TestListKeysUsesConfigFile(t *testing.T) {
	config := writeFile(t, t.TempDir(), "rpmtrust.yaml", "dbpath: /srv/rpmdb\nrpm: /usr/local/bin/rpm\n")
	driver := sessiontest.New().Respond("", 0)

	_, err := execute(t, driver, "list-keys", "--config", config)
	require.NoError(t, err)

	cmd := driver.Calls()[0].Command
	assert.Equal(t, "/usr/local/bin/rpm", cmd.Path)
	assert.Equal(t, []string{"--dbpath", "/srv/rpmdb", "-qa", "gpg-pubkey*"}, cmd.Args)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	driver := sessiontest.New().Respond("", 0)
	orig := newDriver
	newDriver = func(*models.Config) session.Driver { return driver }
	t.Cleanup(func() { newDriver = orig })
	t.Setenv("RPMTRUST_DBPATH", "/from/env")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list-keys", "--dbpath", "/from/flag"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, []string{"--dbpath", "/from/flag", "-qa", "gpg-pubkey*"}, driver.Calls()[0].Command.Args)
}

func TestRemoveKeyLowercasesFingerprint(t *testing.T) {
	driver := sessiontest.New().
		Respond("gpg-pubkey-abcd1234-5f5f5f5f\n", 0).
		Respond("", 0)

	_, err := execute(t, driver, "remove-key", "0011223344556677ABCD1234")
	require.NoError(t, err)

	calls := driver.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"-e", "gpg-pubkey-abcd1234-5f5f5f5f"}, calls[1].Command.Args)
}

func TestRemoveKeyReportsEveryFailure(t *testing.T) {
	driver := sessiontest.New().
		Respond("gpg-pubkey-abcd1234-5f5f5f5f\n", 0).
		Respond("gpg-pubkey-abcd1234-5f5f5f5f\n", 0).
		Respond("", 0)

	_, err := execute(t, driver, "remove-key", "00000000", "abcd1234")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrKeyNotFound))

	// The second fingerprint was still removed
	calls := driver.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "-e", calls[2].Command.Args[0])
}

func TestRemoveKeyNeedsFingerprint(t *testing.T) {
	_, err := execute(t, sessiontest.New(), "remove-key")
	assert.Error(t, err)
}

func TestImportKey(t *testing.T) {
	keyFile := writeFile(t, t.TempDir(), "RPM-GPG-KEY-test", "not parsable, rpm decides")
	driver := sessiontest.New().Respond("", 0)

	_, err := execute(t, driver, "import-key", keyFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"--import", keyFile}, driver.Calls()[0].Command.Args)
}

func TestImportKeyFails(t *testing.T) {
	keyFile := writeFile(t, t.TempDir(), "RPM-GPG-KEY-test", "")
	driver := sessiontest.New().Respond("error: RPM-GPG-KEY-test: import read failed(2).\n", 1)

	_, err := execute(t, driver, "import-key", keyFile)
	assert.True(t, models.IsType(err, models.ErrKeyImport), "got %v", err)
}

func TestSignWithPassphraseFile(t *testing.T) {
	dir := t.TempDir()
	pkg := writeFile(t, dir, "cat-1.0-1.x86_64.rpm", "rpm")
	passFile := writeFile(t, dir, "pass", "s3cret\n")
	driver := sessiontest.New().Respond("Enter pass phrase: \n", 0)

	_, err := execute(t, driver, "sign", "--signer", "Jane Packager", "--passphrase-file", passFile, pkg)
	require.NoError(t, err)

	call := driver.Calls()[0]
	assert.True(t, call.Interactive)
	assert.Equal(t, "s3cret", call.Prompt.Secret)
	assert.Equal(t, []string{"--define", "_gpg_name Jane Packager", "--addsign", pkg}, call.Command.Args)
}

func TestSignWithEnvironmentPassphrase(t *testing.T) {
	pkg := writeFile(t, t.TempDir(), "cat.rpm", "rpm")
	driver := sessiontest.New().Respond("", 0)
	orig := newDriver
	newDriver = func(*models.Config) session.Driver { return driver }
	t.Cleanup(func() { newDriver = orig })
	t.Setenv("RPMTRUST_PASSPHRASE", "from-env")
	t.Setenv("RPMTRUST_SIGNER", "builder@example.com")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"sign", "--resign", pkg})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	call := driver.Calls()[0]
	assert.Equal(t, "from-env", call.Prompt.Secret)
	assert.Contains(t, call.Command.Args, "--resign")
	assert.Contains(t, call.Command.Args, "_gpg_name builder@example.com")
}

func TestSignNeedsSigner(t *testing.T) {
	pkg := writeFile(t, t.TempDir(), "cat.rpm", "rpm")

	_, err := execute(t, sessiontest.New(), "sign", pkg)
	assert.True(t, models.IsType(err, models.ErrInvalidArgument), "got %v", err)
}

func TestSignRejectsBadPromptPattern(t *testing.T) {
	pkg := writeFile(t, t.TempDir(), "cat.rpm", "rpm")

	_, err := execute(t, sessiontest.New(), "sign", "--signer", "jane", "--prompt-pattern", "(", pkg)
	assert.True(t, models.IsType(err, models.ErrInvalidArgument), "got %v", err)
}

func TestVerifyDirectory(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.rpm", "rpm")
	bad := writeFile(t, dir, "b.rpm", "rpm")
	unsigned := writeFile(t, dir, "c.rpm", "rpm")
	writeFile(t, dir, "README", "not a package")
	reportPath := filepath.Join(dir, "out", "report.json.gz")

	driver := sessiontest.New().
		Respond(good+": digests signatures OK\n", 0).
		Respond(bad+": digests SIGNATURES NOT OK\n", 1).
		Respond(unsigned+": digests OK\n", 0)

	out, err := execute(t, driver, "verify", "--jobs", "1", "--report", reportPath, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 packages failed")

	assert.Equal(t, strings.Join([]string{
		good + ": valid",
		bad + ": invalid",
		unsigned + ": unsigned",
	}, "\n")+"\n", out)

	r, err := report.Read(reportPath)
	require.NoError(t, err)
	assert.Equal(t, report.Summary{Total: 3, Valid: 1, Invalid: 1, Unsigned: 1}, r.Summary)

	shown, err := execute(t, sessiontest.New(), "show-report", reportPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 packages failed")
	assert.Equal(t, out, shown)
}

func TestShowReport(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.yaml.xz")
	r := report.New([]report.Entry{
		{File: "/srv/a.rpm", Package: "a-1.0-1.noarch", Status: report.StatusValid},
		{File: "/srv/b.rpm", Status: report.StatusUnsigned},
	})
	require.NoError(t, r.Write(reportPath))

	out, err := execute(t, sessiontest.New(), "show-report", reportPath)
	require.NoError(t, err)
	assert.Equal(t, "/srv/a.rpm (a-1.0-1.noarch): valid\n/srv/b.rpm: unsigned\n", out)

	_, err = execute(t, sessiontest.New(), "show-report", "--strict", reportPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 packages failed")

	_, err = execute(t, sessiontest.New(), "show-report", filepath.Join(dir, "missing.json"))
	assert.True(t, models.IsType(err, models.ErrReport), "got %v", err)
}

func TestVerifyStrict(t *testing.T) {
	pkg := writeFile(t, t.TempDir(), "c.rpm", "rpm")

	_, err := execute(t, sessiontest.New().Respond("digests OK\n", 0), "verify", pkg)
	require.NoError(t, err)

	_, err = execute(t, sessiontest.New().Respond("digests OK\n", 0), "verify", "--strict", pkg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 packages failed")
}

func TestVerifyRecordsSessionErrors(t *testing.T) {
	pkg := writeFile(t, t.TempDir(), "c.rpm", "rpm")
	driver := sessiontest.New().Fail(models.NewError(models.ErrProcessSpawn, "rpm --checksig", ""))

	out, err := execute(t, driver, "verify", pkg)
	require.Error(t, err)
	assert.Equal(t, pkg+": error\n", out)
}

func TestVerifyStopsWhenCancelled(t *testing.T) {
	pkg := writeFile(t, t.TempDir(), "c.rpm", "rpm")
	driver := sessiontest.New().Fail(&models.TrustError{Type: models.ErrCancelled, Subject: "rpm", Err: context.Canceled})

	out, err := execute(t, driver, "verify", pkg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "", FormatError(nil))
	assert.Equal(t, "Error: no installed key matches abcd1234",
		FormatError(models.NewError(models.ErrKeyNotFound, "abcd1234", "")))
	assert.Equal(t, "Error: operation canceled",
		FormatError(&models.TrustError{Type: models.ErrCancelled, Err: context.Canceled}))
	assert.Equal(t, "Error: cat.rpm is not signed",
		FormatError(models.NewError(models.ErrUnsignedFile, "cat.rpm", "")))
	assert.Equal(t, "Error: lost the terminal of rpmsign: EOF",
		FormatError(&models.TrustError{Type: models.ErrSessionIO, Subject: "rpmsign", Err: io.EOF}))
	assert.Equal(t, "Error: boom", FormatError(errors.New("boom")))
}
