package internal

// Version is the hanzi release version
const Version = "0.3.0"
