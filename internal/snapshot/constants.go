package snapshot

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Worker configuration constants.
const (
	defaultWorkers = 4
)

const gameDateLayout = "2006-01-02"
