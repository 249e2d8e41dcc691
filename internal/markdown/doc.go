// Package markdown reads markdown documents from a filesystem, splits their
// frontmatter from the body, and renders bodies to HTML with goldmark.
package markdown
