// Package files stores uploaded source files and generated reports on disk.
// Stored names carry an upload timestamp prefix so repeated uploads of the
// same file never collide, and every lookup validates the name against path
// traversal before touching the filesystem.
package files
