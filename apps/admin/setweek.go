package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) setWeek(ctx context.Context, week int, start string) error {
	rng, err := cli.calSvc.SetStart(ctx, week, start)
	if err != nil {
		return err
	}
	if !rng.IsSet() {
		fmt.Printf("week %d cleared\n", week)
		return nil
	}
	fmt.Printf("week %d: %s - %s\n", rng.Week, rng.StartDisplay, rng.EndDisplay)
	return nil
}
