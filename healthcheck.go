package main

import (
	"context"
	"fmt"
	"time"

	"github.com/carlmjohnson/requests"
)

func (a *autoPost) healthcheckExitCode() int {
	if a.healthcheck() {
		return 0
	}
	return 1
}

// healthcheck fetches the ping endpoint of this instance.
func (a *autoPost) healthcheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := requests.
		URL(a.cfg.Server.PublicAddress + pingPath).
		Client(a.httpClient).
		Fetch(ctx)
	if err != nil {
		fmt.Println(err.Error())
		return false
	}
	return true
}
