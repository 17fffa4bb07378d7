// Package fileutil holds small filesystem helpers shared by the document stores.
package fileutil
