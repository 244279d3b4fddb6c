package main

import (
	"errors"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/healthcheck"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/mq"
	"github.com/phenixreturn/multi-agent-coverage-planner/coverageserver"
)

func NewHealthCheck(brokerclient *mq.Client, server *coverageserver.Server, port string) *healthcheck.HealthCheckServer {
	healthCheckServer := healthcheck.NewHealthCheckServer(port)

	healthCheckServer.Register("mq", func() (err error, ok bool) {
		pingErr := brokerclient.Ping()

		if pingErr != nil {
			return pingErr, false
		} else {
			return nil, true
		}
	})

	healthCheckServer.Register("ticking", func() (err error, ok bool) {
		if server.GetTicknum() == 0 {
			return errors.New("Control loop has not ticked yet"), false
		}

		return nil, true
	})

	return healthCheckServer
}
