// Package templating implements the naming.Templater capability on top of
// Go's text/template.
//
// Templates address item fields with the usual dot syntax, for example
// "{{.series_name}} - {{.series_id | lower}}". A reference to a field the item
// does not carry is a render error rather than an empty string.
package templating
