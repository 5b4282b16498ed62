// Package fanout broadcasts recurring category notifications to every
// opted-in user. Content is produced once per job and delivered to each
// recipient independently; a blocked or unreachable user never aborts
// the remaining sends.
package fanout
