// Package startup handles configuration loading and startup/shutdown
// logging.
//
// Configuration comes from environment variables with defaults suited
// to container deployment. LoadConfig validates the directories the
// service cannot run without and reports feature availability (ffmpeg,
// metrics) so a misconfigured deployment is obvious from the first
// screen of logs.
package startup
