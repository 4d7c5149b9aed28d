package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scubot/tagbot/internal/dispatch"
)

type testEnv struct {
	dir    string
	config string
	db     string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	return testEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		db:     filepath.Join(dir, "tags.db"),
	}
}

// exec runs one tagbot invocation against the env and returns stdout.
func (e testEnv) exec(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.config, "--db", e.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e testEnv) run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.exec(t, "", args...)
	require.NoError(t, err)
	return out
}

func decodeResponse(t *testing.T, out string) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestRunCreatesAndShowsTag(t *testing.T) {
	env := newTestEnv(t)

	out := env.run(t, "run", "--user-id", "7", "--user-name", "freya", `tag new motd "dive safe"`)
	assert.Equal(t, "[:ok_hand:] Tag added.\n", out)

	out = env.run(t, "run", "tag", "motd")
	assert.Equal(t, "dive safe\n", out)

	out = env.run(t, "run", "tag", "owner", "motd")
	assert.Equal(t, "This tag was created by: **freya**\n", out)
}

func TestRunRequotesSeparateArguments(t *testing.T) {
	env := newTestEnv(t)

	env.run(t, "run", "--user-id", "7", "tag", "new", "motd", "two words")
	assert.Equal(t, "two words\n", env.run(t, "run", "tag motd"))
}

func TestRunJSON(t *testing.T) {
	env := newTestEnv(t)

	resp := decodeResponse(t, env.run(t, "--json", "run", "--user-id", "7", "tag new motd hi"))
	require.True(t, resp.OK)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "[:ok_hand:] Tag added.", data["reply"])
	assert.Equal(t, false, data["markdown"])

	resp = decodeResponse(t, env.run(t, "--json", "run", "good morning"))
	assert.False(t, resp.OK)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrNoMatch, resp.Error.Code)
}

func TestRunNoMatchTextMode(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.exec(t, "", "run", "good morning")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command matched")
}

func TestShapeModeCannotHostTagCommands(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.exec(t, "", "--duplicate-mode", "shape", "run", "tag list")
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatch.ErrDuplicateRoute)

	resp := decodeResponse(t, env.run(t, "--json", "--duplicate-mode", "shape", "routes"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrRouteConflict, resp.Error.Code)
}

func TestAppErrorCodes(t *testing.T) {
	o := &rootOptions{jsonOutput: true}

	var out bytes.Buffer
	require.NoError(t, o.appError(&out, errors.New("boom")))
	resp := decodeResponse(t, out.String())
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrInternal, resp.Error.Code)
	assert.Equal(t, "boom", resp.Error.Message)

	out.Reset()
	wrapped := &codedError{code: ErrDatabaseError, suggestion: "check the path", err: errors.New("locked")}
	require.NoError(t, o.appError(&out, wrapped))
	resp = decodeResponse(t, out.String())
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrDatabaseError, resp.Error.Code)
	assert.Equal(t, "check the path", resp.Error.Suggestion)
}

func TestInvalidFlagValues(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.exec(t, "", "--duplicate-mode", "fuzzy", "routes")
	assert.Error(t, err)

	_, err = env.exec(t, "", "--log-level", "loud", "routes")
	assert.Error(t, err)
}

func TestRoutesInMatchOrder(t *testing.T) {
	env := newTestEnv(t)

	resp := decodeResponse(t, env.run(t, "--json", "routes"))
	require.True(t, resp.OK)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 8, resp.Meta.Count)

	routes := resp.Data.([]any)
	first := routes[0].(map[string]any)
	assert.Equal(t, "tag list", first["template"])
	assert.EqualValues(t, 0, first["captures"])

	text := env.run(t, "routes")
	assert.Contains(t, text, "tag list <page:int>")
	assert.Contains(t, text, "(1,0)")
	assert.Less(t, strings.Index(text, "tag remove <name>"), strings.Index(text, "tag new <name> <content>"))
}

func TestConfigPrefixIsUsed(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("[bot]\nprefix = \"!t\"\npage_size = 1\n"), 0o644))

	env.run(t, "run", "--user-id", "1", "!t new a x")
	env.run(t, "run", "--user-id", "1", "!t new b y")
	assert.Equal(t, "List of tags (page 2/2)\nb (1)\n", env.run(t, "run", "!t list 2"))
}

func TestImportExport(t *testing.T) {
	env := newTestEnv(t)
	src := filepath.Join(env.dir, "in.yaml")
	require.NoError(t, os.WriteFile(src, []byte(`tags:
  - name: motd
    content: hello
    owner_id: "1"
    owner_name: alice
  - name: rules
    content: be kind
    owner_id: "2"
`), 0o644))

	resp := decodeResponse(t, env.run(t, "--json", "import", src))
	require.True(t, resp.OK)
	assert.EqualValues(t, 2, resp.Data.(map[string]any)["imported"])

	out := env.run(t, "import", src)
	assert.Contains(t, out, "Imported 0 of 2 tags")

	dst := filepath.Join(env.dir, "out.yaml")
	out = env.run(t, "export", dst)
	assert.Contains(t, out, "Exported 2 tags")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: motd")
	assert.Contains(t, string(data), "content: be kind")
}

func TestImportMissingFile(t *testing.T) {
	env := newTestEnv(t)
	resp := decodeResponse(t, env.run(t, "--json", "import", filepath.Join(env.dir, "nope.yaml")))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrFileReadError, resp.Error.Code)
}

func TestReplReadsLinesUntilExit(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.exec(t, "tag new motd hi\n\ngood morning\ntag motd\nexit\ntag list\n", "repl", "--user-id", "1")
	require.NoError(t, err)
	assert.Equal(t, "[:ok_hand:] Tag added.\n⚠ no command matched\nhi\n", out)
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, env.config+"\n", env.run(t, "config", "path"))

	out := env.run(t, "config", "init")
	assert.Contains(t, out, "Created")
	_, err := os.Stat(env.config)
	require.NoError(t, err)

	out = env.run(t, "config", "init")
	assert.Contains(t, out, "already exists")

	out = env.run(t, "config", "show")
	assert.Contains(t, out, `duplicate_mode = "exact"`)
	assert.Contains(t, out, `prefix = "tag"`)
}

func TestConfigShowReportsBrokenConfig(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("[router]\nduplicate_mode = \"fuzzy\"\n"), 0o644))

	resp := decodeResponse(t, env.run(t, "--json", "config", "show"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrConfigInvalid, resp.Error.Code)
}
