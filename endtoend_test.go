package main

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeds the test folder
//
//go:embed testdata
var testSet embed.FS

type testCase struct {
	line            int
	input, expected string
}

// format is one case per line:
//
//	expression => expected
//
// blank lines and lines starting with # are skipped
func readCases(t *testing.T, name string) []testCase {
	content, err := testSet.ReadFile("testdata/" + name)
	require.NoError(t, err)
	var cases []testCase
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		input, expected, ok := strings.Cut(line, " => ")
		if !ok {
			t.Fatalf("could not parse %s:%d: '%v'", name, i+1, line)
		}
		cases = append(cases, testCase{line: i + 1, input: strings.TrimSpace(input), expected: strings.TrimSpace(expected)})
	}
	require.NotEmpty(t, cases)
	return cases
}

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := newRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(strings.NewReader(stdin))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestModesEndToEnd(t *testing.T) {
	for _, mode := range []string{"simplify", "dnf", "cnf"} {
		t.Run(mode, func(t *testing.T) {
			for _, c := range readCases(t, mode+".txt") {
				t.Run(c.input, func(t *testing.T) {
					stdout, stderr, err := run(t, "", mode, "--color", "never", c.input)
					require.NoError(t, err, "line %d: %s", c.line, stderr)
					assert.Equal(t, c.expected+"\n", stdout, "line %d", c.line)
				})
			}
		})
	}
}

func TestErrorsEndToEnd(t *testing.T) {
	for _, mode := range []string{"simplify", "dnf", "cnf"} {
		for _, c := range readCases(t, "errors.txt") {
			t.Run(mode+" "+c.input, func(t *testing.T) {
				stdout, stderr, err := run(t, "", mode, "--color", "never", c.input)
				assert.ErrorContains(t, err, "1 of 1 expressions failed")
				assert.Empty(t, stdout)
				assert.Contains(t, stderr, "arg 1: error: ("+c.expected+")", "line %d", c.line)
			})
		}
	}
}

func TestBatchFromStdinKeepsOrder(t *testing.T) {
	cases := readCases(t, "dnf.txt")
	var stdin, expected strings.Builder
	for _, c := range cases {
		stdin.WriteString(c.input + "\n")
		expected.WriteString(c.expected + "\n")
	}
	stdout, _, err := run(t, stdin.String(), "dnf", "--concurrency", "4")
	require.NoError(t, err)
	assert.Equal(t, expected.String(), stdout)
}

func TestOneFailureDoesNotStopTheBatch(t *testing.T) {
	stdout, stderr, err := run(t, "", "simplify", "a && a", "a &&", "b || b")
	assert.ErrorContains(t, err, "1 of 3 expressions failed")
	assert.Equal(t, "a\nb\n", stdout)
	assert.Contains(t, stderr, "arg 2: error: (E001)")
}

func TestFileInputWithLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exprs.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\na && !a\n\nc || c\n"), 0o644))

	stdout, _, err := run(t, "", "simplify", "--labels", "--color", "never", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, path+":2: false\n"+path+":4: c\n", stdout)
}

func TestExpansionLimitEndToEnd(t *testing.T) {
	_, stderr, err := run(t, "", "dnf", "--expansion-limit", "1", "!(a && b) && (c || d)")
	assert.Error(t, err)
	assert.Contains(t, stderr, "(E002)")
}

func TestRulesFlag(t *testing.T) {
	stdout, _, err := run(t, "", "simplify", "--rules", "de-morgan", "!(a || b)")
	require.NoError(t, err)
	assert.Equal(t, "(!a && !b)\n", stdout)

	_, _, err = run(t, "", "simplify", "--rules", "nope", "a")
	assert.ErrorContains(t, err, `unknown rule "nope"`)
}

func TestDiffOutput(t *testing.T) {
	stdout, _, err := run(t, "", "simplify", "--diff", "--color", "never", "a && a && b")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[-")
	assert.NotContains(t, stdout, "{+")
}

func TestStatsOutput(t *testing.T) {
	_, stderr, err := run(t, "", "simplify", "--stats", "a && (b || !a)")
	require.NoError(t, err)
	assert.Contains(t, stderr, `boolex_rule_firings_total{rule="complement-absorption"}`)
}

func TestConfigFileAndCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boolex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [idempotence]\nconcurrency: 2\nsizeLimit: 50\n"), 0o644))

	stdout, _, err := run(t, "", "simplify", "-c", path, "a && !a && a")
	require.NoError(t, err)
	assert.Equal(t, "(a && !a)\n", stdout)

	stdout, _, err = run(t, "", "config", "-c", path, "--size-limit", "60")
	require.NoError(t, err)
	assert.Contains(t, stdout, "- idempotence")
	assert.Contains(t, stdout, "sizeLimit: 60")
	assert.Contains(t, stdout, "concurrency: 2")

	_, _, err = run(t, "", "config", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading configuration")

	require.NoError(t, os.WriteFile(path, []byte("rulez: []\n"), 0o644))
	_, _, err = run(t, "", "config", "-c", path)
	assert.ErrorContains(t, err, "decoding configuration")
}

func TestLogLevelFlag(t *testing.T) {
	stdout, _, err := run(t, "", "cnf", "--log-level", "-4", "a")
	require.NoError(t, err)
	assert.Equal(t, "a\n", stdout)
}
