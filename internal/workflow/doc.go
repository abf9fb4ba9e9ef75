// Package workflow runs ordered migration steps loaded from a plan file,
// composing version collection and version removal into a single invocation.
package workflow
