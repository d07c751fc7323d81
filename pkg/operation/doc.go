/*
Package operation runs a pagination migration against one target file.

	+-------------+
	|  Operation  |
	| (Core Logic)|
	+------+------+
	       |
	+------+------+
	|   Rewrite   |
	| (Transform) |
	+------+------+

🎯 Purpose:
- Orchestrates lock, read, rewrite and write of the target
- Reports each guarded handler and the end-of-run counts
- Previews changes as a unified diff without writing

🔄 Flow:
1. Locks the target through the status package
2. Reads it and hands the content to the rewriter
3. Logs every handler block the rewriter classified
4. Writes atomically (optionally after a backup), or prints a diff in dry-run mode
5. Runner prints the summary and the completion message derived from the counts

🤝 Interfaces:
- rewrite.Rewriter: the transformation
- status.FileManager: all file I/O
- log.Logger: console feedback
*/
package operation
