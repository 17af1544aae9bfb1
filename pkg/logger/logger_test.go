// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package logger_test

import (
	. "github.com/carbynestack/lockstep/pkg/logger"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zapcore"
)

var _ = Describe("Logger", func() {
	It("logs at the given level", func() {
		l, err := NewLogger("warn")
		Expect(err).NotTo(HaveOccurred())
		Expect(l.Desugar().Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
		Expect(l.Desugar().Core().Enabled(zapcore.ErrorLevel)).To(BeTrue())
	})
	It("logs everything in development mode", func() {
		l, err := NewDevelopmentLogger()
		Expect(err).NotTo(HaveOccurred())
		Expect(l.Desugar().Core().Enabled(zapcore.DebugLevel)).To(BeTrue())
	})
	It("rejects unknown levels", func() {
		_, err := NewLogger("chatty")
		Expect(err).To(HaveOccurred())
	})
})
