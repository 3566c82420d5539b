// Package items loads download items from YAML (or JSON) manifests.
//
// A manifest is either a mapping with an "items" list or a bare list. Each
// item carries a title, its content_files (a single path or a list) and a
// free-form fields mapping exposed to the rename, uri and option templates.
package items
