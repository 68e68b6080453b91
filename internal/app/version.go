package app

// Version is overridden at build time with -ldflags "-X ...app.Version=...".
var Version = "dev"
