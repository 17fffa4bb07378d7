// Package logs reads the daily log files written by the logging package.
//
// Latest locates the newest diffusedbrush-*.log file in the log directory and
// Tail prints its last lines, optionally following appended output until the
// context is cancelled. The CLI "diffusedbrush logs" command is the only caller.
package logs
