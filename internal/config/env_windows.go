//go:build windows

package config

// unix names commonly used in backup paths, mapped to their windows spelling
var windowsEnvKeys = map[string]string{
	"HOSTNAME": "COMPUTERNAME",
	"USER":     "USERNAME",
	"HOME":     "USERPROFILE",
}

func mapEnvKey(key string) string {
	if mapped, ok := windowsEnvKeys[key]; ok {
		return mapped
	}
	return key
}
