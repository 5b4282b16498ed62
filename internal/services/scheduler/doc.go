// Package scheduler is the clock driver: a thin robfig/cron wrapper
// that fires the dispatcher and fan-out jobs on their intervals and
// wall-clock times.
//
// Jobs are chained with SkipIfStillRunning, so a tick that is still in
// flight suppresses the next one instead of stacking (a slow external
// call delays that job only, never a concurrent re-entry).
package scheduler
