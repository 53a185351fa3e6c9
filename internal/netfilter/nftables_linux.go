//go:build linux

// Package netfilter programs the kernel to steer outbound IP traffic into
// the NFQUEUE the filter reads from.
package netfilter

import (
	"fmt"

	"github.com/google/nftables"
	"github.com/google/nftables/expr"
)

const tableName = "geoblock"

// Redirect owns the nftables table that diverts outbound traffic.
type Redirect struct {
	conn  *nftables.Conn
	table *nftables.Table
}

// InstallRedirect creates an inet table with an output-hook chain whose only
// rule queues every outbound packet to queueNum. The equivalent of:
//
//	nft add table inet geoblock
//	nft add chain inet geoblock output '{ type filter hook output priority 0; }'
//	nft add rule inet geoblock output queue num <queueNum>
func InstallRedirect(queueNum uint16) (*Redirect, error) {
	conn, err := nftables.New()
	if err != nil {
		return nil, fmt.Errorf("failed to open netlink connection: %w", err)
	}

	table := conn.AddTable(&nftables.Table{
		Family: nftables.TableFamilyINet,
		Name:   tableName,
	})
	chain := conn.AddChain(&nftables.Chain{
		Name:     "output",
		Table:    table,
		Type:     nftables.ChainTypeFilter,
		Hooknum:  nftables.ChainHookOutput,
		Priority: nftables.ChainPriorityFilter,
	})
	conn.AddRule(&nftables.Rule{
		Table: table,
		Chain: chain,
		Exprs: []expr.Any{
			&expr.Queue{Num: queueNum},
		},
	})

	if err := conn.Flush(); err != nil {
		return nil, fmt.Errorf("failed to install nftables redirect: %w", err)
	}
	return &Redirect{conn: conn, table: table}, nil
}

// Remove deletes the redirect table, restoring normal packet delivery.
func (r *Redirect) Remove() error {
	r.conn.DelTable(r.table)
	if err := r.conn.Flush(); err != nil {
		return fmt.Errorf("failed to remove nftables redirect: %w", err)
	}
	return nil
}
