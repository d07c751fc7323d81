/*
Package config manages configuration parsing and validation for pagemigrate.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	          +--------+--------+
	          |                 |
	  +-------+------+   +------+---+
	  | StreamParser |   |   HCL    |
	  | (YAML, JSON) |   |  Parser  |
	  +--------------+   +----------+

🎯 Purpose:
- Selects a parser by file extension
- Fills every unset field from the Xibo defaults
- Validates names before they reach generated code

🔄 Flow:
1. Reads the file named by --config (or uses Default when none is given)
2. Decodes format-specific syntax
3. Applies defaults
4. Validates and hands rewrite.Options to the rewriter

📄 Example (HCL):

	target = "nodes/Xibo/Xibo.node.ts"
	backup = true

	rewrite {
		unpaginated_func = "xiboApiRequest"
		paginated_func   = "xiboApiRequestAllItems"
		page_size        = default_page_size * 2
	}
*/
package config
