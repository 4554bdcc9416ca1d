package config

// Export the private function for testing
var SplitChannelIDs = splitChannelIDs
