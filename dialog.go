package main

// Dialog hooks, overridden in tests
var (
	promptDialog  = showPrompt
	confirmDialog = showConfirm
)
