// Command tabvault saves browser tab sessions into bookmark folders, on
// demand or on a schedule.
package main

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitOnError(err)
	}
}
