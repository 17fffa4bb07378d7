// Package prompt composes generation prompts from a submission subject and a
// randomized draw of descriptor keywords.
//
// The keyword pool comes from, in order of precedence, the YAML file named
// by prompt.keywords_file, the prompt.keywords config list, or the built-in
// DefaultKeywords.
package prompt
