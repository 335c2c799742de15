package model

// VersionInfo contains version and feature information for the application.
type VersionInfo struct {
	AppVersion string          `json:"app_version"`
	DbVersion  string          `json:"db_version"`
	Features   map[string]bool `json:"features"`
}

// ChecksumResult is the reply of the connectivity smoke call.
type ChecksumResult struct {
	Num1 uint32 `json:"num1"`
	Num2 uint32 `json:"num2"`
	Sum  uint32 `json:"sum"`
}
