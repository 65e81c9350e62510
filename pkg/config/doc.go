/*
Package config loads and validates Lookout's YAML configuration.

Load starts from Default and overlays the file, so a partial config is
fine. Validation catches empty addresses, unknown dependency types and
non-positive job cadences at startup rather than at first tick.
*/
package config
