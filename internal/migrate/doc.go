// Package migrate implements the version removal workflow that walks project
// trees, locates project manifest files, and strips version attributes from
// package reference declarations in preparation for centralized package
// version management.
package migrate
