package applescript

import "runtime"

const requiredGOOS = "darwin"

// CheckPlatform returns a *PlatformError unless the host is macOS.
func CheckPlatform() error {
	return checkPlatform(runtime.GOOS)
}

func checkPlatform(goos string) error {
	if goos != requiredGOOS {
		return &PlatformError{GOOS: goos}
	}
	return nil
}
