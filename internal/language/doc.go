// Package language normalizes the language codes mkvlang stamps onto tracks.
//
// mkvmerge expects ISO 639-2 codes. Users may configure a two-letter code, a
// three-letter code, or an English word; Normalize3 folds all of these into the
// three-letter form and rejects the undetermined sentinel.
package language
