// Package jobfile loads the YAML job descriptions consumed by the
// subprocrun command.
package jobfile
