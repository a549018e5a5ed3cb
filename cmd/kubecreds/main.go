// Copyright 2022 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package main

import (
	"context"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.jetpack.io/kubecreds/kubecli"
	"go.jetpack.io/kubecreds/kubecli/provider"
	"go.jetpack.io/kubecreds/pkg/buildstamp"
)

func main() {
	var opts []kubecli.Option
	if dsn := os.Getenv("KUBECREDS_SENTRY_DSN"); dsn != "" {
		stamp := buildstamp.Get()
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Release:     stamp.Version(),
			Environment: lo.Ternary(stamp.IsDevBinary(), "development", "production"),
		})
		if err != nil {
			logrus.Warnf("error reporting disabled: %v", err)
		} else {
			opts = append(opts, kubecli.WithErrorLogger(&provider.SentryLogger{}))
		}
	}
	kubecli.New(opts...).Run(context.Background())
}
