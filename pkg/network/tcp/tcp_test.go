//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//
package tcp_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/carbynestack/lockstep/pkg/network"
	. "github.com/carbynestack/lockstep/pkg/network/tcp"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

func freeAddresses(n int) []string {
	addrs := make([]string, n)
	for i := range addrs {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		addrs[i] = lis.Addr().String()
		Expect(lis.Close()).To(Succeed())
	}
	return addrs
}

func connectAll(addrs []string) []*Network {
	nets := make([]*Network, len(addrs))
	errs := make([]error, len(addrs))
	var wg sync.WaitGroup
	for i := range addrs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conf := &Config{
				MyID:           i,
				Addresses:      addrs,
				RetryInterval:  10 * time.Millisecond,
				ConnectTimeout: 5 * time.Second,
				ReceiveTimeout: 5 * time.Second,
			}
			nets[i], errs[i] = Connect(context.Background(), conf, zap.NewNop().Sugar())
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		Expect(err).NotTo(HaveOccurred())
	}
	return nets
}

var _ = Describe("TCP network", func() {
	var nets []*Network

	AfterEach(func() {
		for _, n := range nets {
			if n != nil {
				Expect(n.Close()).To(Succeed())
			}
		}
		nets = nil
	})

	Context("when all parties are up", func() {
		BeforeEach(func() {
			nets = connectAll(freeAddresses(3))
		})
		It("exchanges messages between every pair of parties", func() {
			results := make([][][]byte, len(nets))
			errs := make([]error, len(nets))
			var wg sync.WaitGroup
			for i := range nets {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if errs[i] = nets[i].SendToAll([]byte(fmt.Sprintf("hello from %d", i))); errs[i] != nil {
						return
					}
					results[i], errs[i] = nets[i].ReceiveFromAll()
				}(i)
			}
			wg.Wait()
			for i := range nets {
				Expect(errs[i]).NotTo(HaveOccurred())
				for j := range nets {
					Expect(string(results[i][j])).To(Equal(fmt.Sprintf("hello from %d", j)))
				}
			}
			Expect(nets[0].SentBytes()).To(Equal(int64(2 * len("hello from 0"))))
		})
		It("keeps the order of messages between two parties", func() {
			for i := 0; i < 50; i++ {
				Expect(nets[2].Send(0, []byte{byte(i)})).To(Succeed())
			}
			for i := 0; i < 50; i++ {
				Expect(nets[0].Receive(2)).To(Equal([]byte{byte(i)}))
			}
			Expect(nets[0].NoOfParties()).To(Equal(3))
			Expect(nets[2].MyID()).To(Equal(2))
		})
		It("reports a lost connection as communication failure", func() {
			Expect(nets[1].Close()).To(Succeed())
			_, err := nets[0].Receive(1)
			Expect(err).To(MatchError(network.ErrCommunication))
		})
	})

	Context("when a party never shows up", func() {
		It("fails after the connect timeout", func() {
			addrs := freeAddresses(2)
			conf := &Config{
				MyID:           1,
				Addresses:      addrs,
				RetryInterval:  10 * time.Millisecond,
				ConnectTimeout: 200 * time.Millisecond,
			}
			_, err := Connect(context.Background(), conf, zap.NewNop().Sugar())
			Expect(err).To(MatchError(network.ErrCommunication))
		})
	})

	Context("when a peer connects but never sends its handshake", func() {
		It("fails after the connect timeout", func() {
			addrs := freeAddresses(2)
			conf := &Config{
				MyID:           0,
				Addresses:      addrs,
				RetryInterval:  10 * time.Millisecond,
				ConnectTimeout: 300 * time.Millisecond,
			}
			done := make(chan error, 1)
			go func() {
				_, err := Connect(context.Background(), conf, zap.NewNop().Sugar())
				done <- err
			}()
			var silent net.Conn
			Eventually(func() error {
				var err error
				silent, err = net.Dial("tcp", addrs[0])
				return err
			}, time.Second, 10*time.Millisecond).Should(Succeed())
			defer silent.Close()
			Eventually(done, 2*time.Second).Should(Receive(MatchError(ContainSubstring("reading handshake"))))
		})
	})

	It("rejects an invalid configuration", func() {
		_, err := Connect(context.Background(), &Config{MyID: 2, Addresses: []string{"a", "b"}}, zap.NewNop().Sugar())
		Expect(err).To(HaveOccurred())
	})
})
