package mcpserver

// Instructions is sent to clients during initialization.
const Instructions = `Headless Markdown vault server.
Provides tools to list, read, append to, patch, and search notes directly in the vault.
Read the vault://patch-guide resource before using patch_content.`

// PatchGuide describes how patch_content locates its target and what each
// operation does. Served as the vault://patch-guide resource.
const PatchGuide = `# Patching notes

patch_content edits one place in a note and leaves the rest byte-for-byte intact.

## Arguments

- filepath: vault path ("projects/plan.md") or bare file name ("plan"); ".md" is added when missing.
- target_type: heading | block | frontmatter | text
- target: what to look for (see below)
- operation: prepend | append | replace
- content: the text to insert; multi-line content is inserted as several lines.

## Target types

heading
  target is the heading text with or without the leading #'s, compared case-insensitively
  ("Tasks", "## Tasks" and "tasks" all match "## Tasks").
  prepend/append insert directly below the heading line; replace swaps the heading line itself.

block
  target is a block reference id with or without "^" ("abc123" or "^abc123").
  prepend inserts above the line carrying the id, append below it, replace swaps that line.

frontmatter
  target is a top-level YAML key. A missing frontmatter block or key is created.
  replace sets the value; append and prepend join the new text to the old value with a newline.
  Other keys keep their order.

text
  target is a literal span, which may cross lines.
  prepend inserts before it, append after it, replace substitutes it.

## Failures

Nothing is written when a patch fails.
- a heading, block or text target that does not occur: not found
- a heading, block or text target that occurs more than once: ambiguous; make it unique first
- a frontmatter block without a closing "---" or that is not a key/value mapping: malformed document
`
