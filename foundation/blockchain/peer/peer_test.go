package peer_test

import (
	"slices"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
		exp   []string
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host3"}, {Host: "host1"}, {Host: "host2"}},
			exp:   []string{"host1", "host2", "host3"},
		},
		{
			name:  "duplicates",
			peers: []peer.Peer{{Host: "host1"}, {Host: "host1"}, {Host: "host2"}},
			exp:   []string{"host1", "host2"},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, peer := range tst.peers {
				ps.Add(peer)
			}

			hosts := ps.Hosts()
			if !slices.Equal(hosts, tst.exp) {
				t.Logf("Test %s:\tgot: %v", tst.name, hosts)
				t.Logf("Test %s:\texp: %v", tst.name, tst.exp)
				t.Fatalf("Test %s:\tShould get back the sorted peers.", tst.name)
			}

			peers := ps.Copy("host2")
			if len(peers) != len(tst.exp)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.exp)-1)
				t.Fatalf("Test %s:\tShould get back the peers without the excluded host.", tst.name)
			}

			ps.Remove(peer.New("host1"))
			if ps.Len() != len(tst.exp)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, ps.Len())
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.exp)-1)
				t.Fatalf("Test %s:\tShould be able to remove a peer.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_AddIdempotent(t *testing.T) {
	ps := peer.NewPeerSet()

	if !ps.Add(peer.New("host1")) {
		t.Fatal("Should report a new peer as added.")
	}

	if ps.Add(peer.New("host1")) {
		t.Fatal("Should report a known peer as not added.")
	}

	if ps.Len() != 1 {
		t.Fatalf("Should keep a single peer, got %d.", ps.Len())
	}
}
