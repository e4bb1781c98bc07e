// Package jobs hosts long-running archive work on top of the filesystem
// driver: ad-hoc jobs with per-member progress and cancellation, toast
// notifications for terminal outcomes, and a cron runner for tasks declared
// in a TOML schedule.
package jobs
