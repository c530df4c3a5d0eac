/*
Package filter implements hierarchical exclusion rules for copy operations.

	+------------+      +-----------+      +----------+
	|  Resolver  |----->|  RuleSet  |      |  Match   |
	| (per-dir   |      | (patterns |----->| (glob    |
	|  cache)    |      |  + dirs)  |      |  match)  |
	+------------+      +-----------+      +----------+

🎯 Purpose:
- Parses .ignorecopy marker files into pattern sets
- Discovers marker files from the copy root down to each directory
- Merges rules root-to-leaf as a set union
- Answers "is this file/directory excluded?" for the copy engine

🔄 Flow:
1. Copy engine asks the Resolver about a path
2. Resolver walks upward to the copy root collecting marker files
3. Rule sets are built root-to-leaf and unioned into one merged set
4. The merged set is cached per directory for the rest of the operation

📝 Design Philosophy:
Marker files are assumed static for the duration of one copy operation, so
merged rule sets are cached per directory and never invalidated. Unreadable
or malformed marker files contribute zero rules and are never surfaced as
errors to the user.
*/
package filter
