package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/workflow"
)

// Runs one low-stock sweep and exits. Intended for Cloud Scheduler / cron;
// the API exposes the same sweep at POST /requisitions/sweep.
func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall run deadline")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		panic("database not initialized")
	}
	config.ConnectRedisWithRetry()

	logger := config.GetLogger()
	if logger == nil {
		logger = logrus.New()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	created, err := workflow.RunLowStockSweep(ctx, logger)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "lowstock-sweep"}).Error("sweep failed: " + err.Error())
		return
	}

	for _, requisition := range created {
		logger.WithFields(logrus.Fields{
			"requisitionNumber": requisition.RequisitionNumber,
		}).Info("created low-stock requisition")
	}
	logger.WithFields(logrus.Fields{
		"created": len(created),
	}).Info("low-stock sweep finished")
}
