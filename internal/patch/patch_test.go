package patch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/vaultmcp/internal/apperr"
	"github.com/starford/vaultmcp/internal/frontmatter"
)

const tasksNote = "# Title\n\n## Tasks\n- [ ] old\n\n### Urgent\n- [ ] x\n"

func mustApply(t *testing.T, text string, spec Spec) string {
	t.Helper()
	out, err := Apply(text, spec)
	require.NoError(t, err)
	return out
}

func TestSplitJoinRoundTrip(t *testing.T) {
	for _, text := range []string{
		"\n",
		"one\n",
		"one\ntwo\n",
		"one\n\n\nthree\n",
		"---\na: 1\n---\nbody\n",
	} {
		assert.Equal(t, text, JoinLines(SplitLines(text)), "round trip of %q", text)
	}
}

func TestSplitLines(t *testing.T) {
	assert.Empty(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{"a", ""}, SplitLines("a\n\n"))
}

func TestJoinLines_Empty(t *testing.T) {
	assert.Equal(t, "\n", JoinLines(nil))
	assert.Equal(t, "a\n", JoinLines([]string{"a"}))
}

func TestParseTargetTypeAndOperation(t *testing.T) {
	tt, err := ParseTargetType(" Heading ")
	require.NoError(t, err)
	assert.Equal(t, Heading, tt)

	_, err = ParseTargetType("section")
	require.ErrorIs(t, err, apperr.ErrUnsupportedTarget)

	op, err := ParseOperation("APPEND")
	require.NoError(t, err)
	assert.Equal(t, Append, op)

	_, err = ParseOperation("delete")
	require.ErrorIs(t, err, apperr.ErrUnsupportedOperation)
}

func TestApply_RejectsBadSpec(t *testing.T) {
	_, err := Apply("x\n", Spec{TargetType: TargetType(99), Target: "x", Operation: Append})
	require.ErrorIs(t, err, apperr.ErrUnsupportedTarget)

	_, err = Apply("x\n", Spec{TargetType: Text, Target: "x", Operation: Operation(0)})
	require.ErrorIs(t, err, apperr.ErrUnsupportedOperation)

	_, err = Apply("x\n", Spec{TargetType: Heading, Target: "  ", Operation: Append})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestHeading_AppendScenario(t *testing.T) {
	out := mustApply(t, tasksNote, Spec{TargetType: Heading, Target: "Tasks", Operation: Append, Content: "- [ ] new"})
	assert.Equal(t, "# Title\n\n## Tasks\n- [ ] new\n- [ ] old\n\n### Urgent\n- [ ] x\n", out)

	newAt := strings.Index(out, "- [ ] new")
	assert.Less(t, strings.Index(out, "## Tasks"), newAt)
	assert.Less(t, newAt, strings.Index(out, "### Urgent"))
}

func TestHeading_PrependMatchesAppend(t *testing.T) {
	appended := mustApply(t, tasksNote, Spec{TargetType: Heading, Target: "tasks", Operation: Append, Content: "c"})
	prepended := mustApply(t, tasksNote, Spec{TargetType: Heading, Target: "tasks", Operation: Prepend, Content: "c"})
	assert.Equal(t, appended, prepended)
}

func TestHeading_TargetNormalization(t *testing.T) {
	for _, target := range []string{"Tasks", "## Tasks", "  #tasks ", "TASKS"} {
		out := mustApply(t, tasksNote, Spec{TargetType: Heading, Target: target, Operation: Append, Content: "hit"})
		assert.Contains(t, out, "## Tasks\nhit\n", "target %q", target)
	}
}

func TestHeading_Replace(t *testing.T) {
	out := mustApply(t, tasksNote, Spec{TargetType: Heading, Target: "Urgent", Operation: Replace, Content: "### Later\nnote"})
	assert.Equal(t, "# Title\n\n## Tasks\n- [ ] old\n\n### Later\nnote\n- [ ] x\n", out)
}

func TestHeading_NotFound(t *testing.T) {
	_, err := Apply(tasksNote, Spec{TargetType: Heading, Target: "Missing", Operation: Append, Content: "x"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "Missing")
}

func TestHeading_Ambiguous(t *testing.T) {
	note := "## Notes\na\n## Notes\nb\n"
	_, err := Apply(note, Spec{TargetType: Heading, Target: "Notes", Operation: Append, Content: "x"})
	require.ErrorIs(t, err, apperr.ErrAmbiguousTarget)
	assert.Contains(t, err.Error(), "lines 1, 3")
}

func TestHeading_NonHeadingLineIgnored(t *testing.T) {
	note := "Tasks\n## Tasks\n"
	out := mustApply(t, note, Spec{TargetType: Heading, Target: "Tasks", Operation: Append, Content: "x"})
	assert.Equal(t, "Tasks\n## Tasks\nx\n", out)
}

func TestBlock(t *testing.T) {
	note := "intro\nimportant line ^abc123\noutro\n"

	out := mustApply(t, note, Spec{TargetType: Block, Target: "abc123", Operation: Prepend, Content: "before"})
	assert.Equal(t, "intro\nbefore\nimportant line ^abc123\noutro\n", out)

	out = mustApply(t, note, Spec{TargetType: Block, Target: "^abc123", Operation: Append, Content: "after"})
	assert.Equal(t, "intro\nimportant line ^abc123\nafter\noutro\n", out)

	out = mustApply(t, note, Spec{TargetType: Block, Target: "abc123", Operation: Replace, Content: "swapped ^abc123"})
	assert.Equal(t, "intro\nswapped ^abc123\noutro\n", out)
}

func TestBlock_NotFoundAndAmbiguous(t *testing.T) {
	_, err := Apply("no refs here\n", Spec{TargetType: Block, Target: "^abc123", Operation: Replace, Content: "x"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = Apply("a ^dup\nb ^dup\n", Spec{TargetType: Block, Target: "dup", Operation: Append, Content: "x"})
	require.ErrorIs(t, err, apperr.ErrAmbiguousTarget)
}

func TestFrontmatter_SynthesizedWhenAbsent(t *testing.T) {
	out := mustApply(t, "# Note\nbody\n", Spec{TargetType: Frontmatter, Target: "status", Operation: Replace, Content: "done"})
	assert.Equal(t, "---\nstatus: done\n---\n# Note\nbody\n", out)
}

func TestFrontmatter_SynthesizedOnEmptyNote(t *testing.T) {
	out := mustApply(t, "", Spec{TargetType: Frontmatter, Target: "status", Operation: Append, Content: "new"})
	assert.Equal(t, "---\nstatus: new\n---\n", out)
}

func TestFrontmatter_ReplaceKeepsOrder(t *testing.T) {
	note := "---\ntitle: Plan\nstatus: draft\ntags:\n  - work\n---\nbody\n"
	out := mustApply(t, note, Spec{TargetType: Frontmatter, Target: "status", Operation: Replace, Content: "done"})
	assert.True(t, strings.HasPrefix(out, "---\ntitle: Plan\nstatus: done\ntags:\n"), out)
	assert.True(t, strings.HasSuffix(out, "---\nbody\n"), out)
}

func frontmatterValue(t *testing.T, text, key string) string {
	t.Helper()
	lines := SplitLines(text)
	closing, found, err := frontmatter.Locate(lines)
	require.NoError(t, err)
	require.True(t, found)
	fm, err := frontmatter.Decode(lines[1:closing])
	require.NoError(t, err)
	v, _ := fm.Get(key)
	return v
}

func TestFrontmatter_AppendPrepend(t *testing.T) {
	note := "---\nlog: first\n---\n"

	out := mustApply(t, note, Spec{TargetType: Frontmatter, Target: "log", Operation: Append, Content: "second"})
	assert.Equal(t, "first\nsecond", frontmatterValue(t, out, "log"))

	out = mustApply(t, note, Spec{TargetType: Frontmatter, Target: "log", Operation: Prepend, Content: "zeroth"})
	assert.Equal(t, "zeroth\nfirst", frontmatterValue(t, out, "log"))

	out = mustApply(t, note, Spec{TargetType: Frontmatter, Target: "other", Operation: Prepend, Content: "only"})
	assert.Equal(t, "only", frontmatterValue(t, out, "other"))
	assert.Equal(t, "first", frontmatterValue(t, out, "log"))
}

func TestFrontmatter_Unclosed(t *testing.T) {
	_, err := Apply("---\ntitle: x\nbody\n", Spec{TargetType: Frontmatter, Target: "title", Operation: Replace, Content: "y"})
	require.ErrorIs(t, err, apperr.ErrMalformedDocument)
}

func TestText(t *testing.T) {
	note := "alpha beta\ngamma\n"

	out := mustApply(t, note, Spec{TargetType: Text, Target: "beta", Operation: Replace, Content: "BETA"})
	assert.Equal(t, "alpha BETA\ngamma\n", out)

	out = mustApply(t, note, Spec{TargetType: Text, Target: "beta", Operation: Prepend, Content: "pre-"})
	assert.Equal(t, "alpha pre-beta\ngamma\n", out)

	out = mustApply(t, note, Spec{TargetType: Text, Target: "gamma", Operation: Append, Content: "\ndelta"})
	assert.Equal(t, "alpha beta\ngamma\ndelta\n", out)
}

func TestText_SpansLines(t *testing.T) {
	out := mustApply(t, "one\ntwo\nthree\n", Spec{TargetType: Text, Target: "one\ntwo", Operation: Replace, Content: "merged"})
	assert.Equal(t, "merged\nthree\n", out)
}

func TestText_NotFoundAndAmbiguous(t *testing.T) {
	_, err := Apply("abc\n", Spec{TargetType: Text, Target: "xyz", Operation: Replace, Content: "q"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = Apply("ab ab\n", Spec{TargetType: Text, Target: "ab", Operation: Replace, Content: "q"})
	require.ErrorIs(t, err, apperr.ErrAmbiguousTarget)
}

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec("replace", "frontmatter", "status", "done")
	require.NoError(t, err)
	assert.Equal(t, Spec{TargetType: Frontmatter, Target: "status", Operation: Replace, Content: "done"}, spec)

	_, err = ParseSpec("replace", "paragraph", "x", "y")
	require.ErrorIs(t, err, apperr.ErrUnsupportedTarget)
}
