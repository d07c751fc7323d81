/*
Package status manages the target file on disk for pagemigrate.

	            +-------------+
	            |   Status    |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|  Atomic  | |  Backup  | |   Lock   |
	|  Write   | |  (.bak)  | | (.lock)  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Reads the target into memory in one call
- Replaces it atomically (temp file in the same directory, then rename)
- Keeps an optional .bak copy
- Holds an exclusive .lock file for the duration of a run

🔄 Flow:
1. Lock the target
2. Read and checksum it
3. Operation computes the new content
4. Re-checksum, optionally back up, write atomically
5. Release the lock on every exit path

🔍 Example:

	files := status.New(".")

	lease, err := files.Lock(ctx, path)
	if err != nil {
		return err
	}
	defer lease.Release()

	content, err := files.ReadFile(ctx, path)
	...
	err = files.WriteFileAtomic(ctx, path, updated)
*/
package status
