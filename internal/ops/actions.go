package ops

// Indirection layer to allow stubbing in tests

var (
	fnComposeBuild = composeBuild
	fnComposeUp    = composeUp
	fnComposeDown  = composeDown
	fnComposeClean = composeClean
	fnVerifyClean  = verifyProjectGone
	fnShowStatus   = showStatus
	fnComposeLogs  = composeLogs
	fnPreflight    = runPreflight
	fnBundle       = buildBundle
	fnWaitHealthy  = waitHealthy
)
