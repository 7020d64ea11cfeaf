package mil

// Version is the current version of this resolution engine.
const Version = "0.1.0"
