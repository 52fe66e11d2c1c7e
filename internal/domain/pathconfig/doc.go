/*
Package pathconfig resolves a location to the navigation properties declared
for it.

# Rules

A path configuration document holds global settings and an ordered list of
rules. Each rule has one or more case-insensitive regular expressions matched
anywhere in the location's path (plus "?query" when present). Every matching
rule contributes its properties; later rules override keys set by earlier
ones.

	{
	  "settings": {"screenshots_enabled": true},
	  "rules": [
	    {"patterns": [".*"], "properties": {"context": "default", "pull_to_refresh_enabled": true}},
	    {"patterns": ["/new$", "/edit$"], "properties": {"context": "modal", "pull_to_refresh_enabled": false}}
	  ]
	}

Non-string property values are kept in their textual form ("true", "42").

# Sources

Configuration.Load applies, in order: the bundled file (JSON, YAML or TOML by
extension), the copy cached from the previous remote fetch, and finally the
remote file fetched in the background. Each successful load replaces the rule
set and clears the per-location cache. A remote payload that fails to decode
is logged and never cached, so the last good configuration stays in effect.

# Invalid patterns

A pattern that fails to compile never matches. In debug mode it panics the
first time it is evaluated instead.
*/
package pathconfig
