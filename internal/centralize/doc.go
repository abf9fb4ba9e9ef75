// Package centralize implements the version collection workflow that gathers
// package reference versions from project manifest files and writes them to a
// central package version properties file.
package centralize
