package chain_test

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a chain with a genesis block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen constructing a new chain.", testID)
		{
			var events []chain.Event
			c, err := chain.New[string](func(ev chain.Event) { events = append(events, ev) })
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct the chain.", success, testID)

			if c.Len() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have exactly one block, got %d.", failed, testID, c.Len())
			}

			genesis, ok := c.LastBlock()
			if !ok {
				t.Fatalf("\t%s\tTest %d:\tShould have a last block.", failed, testID)
			}

			if genesis.Index != 0 || genesis.PrevBlockHash != chain.NoHash || len(genesis.Transactions) != 0 || genesis.IsMined() {
				t.Logf("\t%s\tTest %d:\tgot: %+v", failed, testID, genesis)
				t.Fatalf("\t%s\tTest %d:\tShould have an empty unmined genesis block with no previous hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have an empty unmined genesis block with no previous hash.", success, testID)

			hash, err := genesis.Digest()
			if err != nil || hash != genesis.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould store the digest of the genesis block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould store the digest of the genesis block.", success, testID)

			if _, err := time.Parse(chain.TimestampLayout, genesis.Timestamp); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould have an ISO-8601 timestamp: %v", failed, testID, err)
			}

			if len(events) != 1 || events[0].Kind != chain.EventBlockCreated || events[0].Index != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould report the genesis block creation, got %v.", failed, testID, events)
			}
			t.Logf("\t%s\tTest %d:\tShould report the genesis block creation.", success, testID)

			if len(c.Peers()) != 0 || len(c.Pending()) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould start without peers or pending transactions.", failed, testID)
			}
		}
	}
}

func Test_NewBlock(t *testing.T) {
	type table struct {
		name  string
		trans []string
	}

	tt := []table{
		{name: "empty", trans: nil},
		{name: "one", trans: []string{"tx1"}},
		{name: "many", trans: []string{"tx1", "tx2", "tx3"}},
	}

	t.Log("Given the need to append blocks to the chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen creating a block with %d transactions.", testID, len(tst.trans))
				{
					c, err := chain.New[string](nil)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to construct the chain: %v", failed, testID, err)
					}

					for _, tx := range tst.trans {
						c.AddTransaction(tx)
					}

					before := c.Len()
					b, err := c.NewBlock("anything")
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to create the block: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to create the block.", success, testID)

					if c.Len() != before+1 || b.Index != uint64(before) {
						t.Fatalf("\t%s\tTest %d:\tShould grow the chain by one with index %d, got len %d index %d.", failed, testID, before, c.Len(), b.Index)
					}
					t.Logf("\t%s\tTest %d:\tShould grow the chain by one.", success, testID)

					if len(c.Pending()) != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould empty the pending buffer.", failed, testID)
					}

					if !slices.Equal(b.Transactions, tst.trans) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, b.Transactions)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.trans)
						t.Fatalf("\t%s\tTest %d:\tShould move the pending transactions into the block.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould move the pending transactions into the block.", success, testID)

					if b.PrevBlockHash != "anything" {
						t.Fatalf("\t%s\tTest %d:\tShould keep the previous hash as given, got %q.", failed, testID, b.PrevBlockHash)
					}
					t.Logf("\t%s\tTest %d:\tShould keep the previous hash as given.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Scenario(t *testing.T) {
	t.Log("Given the need to create and mine a block from pending transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen linking to the genesis block and mining at difficulty 4.", testID)
		{
			c, err := chain.New[string](nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the chain: %v", failed, testID, err)
			}

			c.AddTransaction("tx1")
			c.AddTransaction("tx2")

			genesis, _ := c.LastBlock()
			b, err := c.NewBlock(genesis.Hash)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create the block: %v", failed, testID, err)
			}

			if b.Index != 1 || !slices.Equal(b.Transactions, []string{"tx1", "tx2"}) || b.PrevBlockHash != genesis.Hash || b.IsMined() {
				t.Logf("\t%s\tTest %d:\tgot: %+v", failed, testID, b)
				t.Fatalf("\t%s\tTest %d:\tShould get block 1 holding tx1 and tx2 linked to genesis.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get block 1 holding tx1 and tx2 linked to genesis.", success, testID)

			mined, err := c.Mine(context.Background(), b.Index, 4)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %v", failed, testID, err)
			}

			if !mined.IsMined() {
				t.Fatalf("\t%s\tTest %d:\tShould have a nonce.", failed, testID)
			}

			hash, err := mined.Digest()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to hash the mined block: %v", failed, testID, err)
			}

			ok, err := pow.IsAcceptable(hash, 4)
			if err != nil || !ok {
				t.Fatalf("\t%s\tTest %d:\tShould have an acceptable digest: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have an acceptable digest.", success, testID)

			last, _ := c.LastBlock()
			if last.Nonce != mined.Nonce || last.Hash != hash {
				t.Fatalf("\t%s\tTest %d:\tShould commit the nonce and final hash in the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould commit the nonce and final hash in the chain.", success, testID)
		}
	}
}

func Test_Linking(t *testing.T) {
	t.Log("Given the need to support strict and raw block creation.")
	{
		c, err := chain.New[string](nil)
		if err != nil {
			t.Fatalf("Should be able to construct the chain: %v", err)
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen extending the chain.", testID)
		{
			prev, _ := c.LastBlock()

			b, err := c.ExtendChain()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to extend the chain: %v", failed, testID, err)
			}

			if b.PrevBlockHash != prev.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould link to the last block, got %s, exp %s.", failed, testID, b.PrevBlockHash, prev.Hash)
			}
			t.Logf("\t%s\tTest %d:\tShould link to the last block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen creating a block with an unrelated previous hash.", testID)
		{
			fork := strings.Repeat("ab", 32)

			b, err := c.NewBlock(fork)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept any previous hash: %v", failed, testID, err)
			}

			if b.PrevBlockHash != fork || b.Index != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould keep the given previous hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the given previous hash.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen walking the chain.", testID)
		{
			for i, b := range c.Blocks() {
				if b.Index != uint64(i) {
					t.Fatalf("\t%s\tTest %d:\tShould have index %d at position %d.", failed, testID, b.Index, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have every block at its index.", success, testID)
		}
	}
}

func Test_EncodingError(t *testing.T) {
	t.Log("Given the need to surface payloads with no canonical form.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a pending transaction can't be encoded.", testID)
		{
			c, err := chain.New[any](nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the chain: %v", failed, testID, err)
			}

			c.AddTransaction(make(chan int))

			if _, err := c.ExtendChain(); !errors.Is(err, digest.ErrEncoding) {
				t.Fatalf("\t%s\tTest %d:\tShould get an encoding error, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get an encoding error.", success, testID)

			if c.Len() != 1 || len(c.Pending()) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the chain and pending buffer untouched.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the chain and pending buffer untouched.", success, testID)
		}
	}
}

func Test_Mine(t *testing.T) {
	t.Log("Given the need to mine blocks in the chain.")
	{
		for difficulty := uint(1); difficulty <= 8; difficulty++ {
			testID := int(difficulty)
			t.Logf("\tTest %d:\tWhen mining the latest block at difficulty %d.", testID, difficulty)
			{
				var kinds []chain.EventKind
				c, err := chain.New[string](func(ev chain.Event) { kinds = append(kinds, ev.Kind) })
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to construct the chain: %v", failed, testID, err)
				}

				mined, err := c.MineLatest(context.Background(), difficulty)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %v", failed, testID, err)
				}

				ok, err := mined.IsSolved(difficulty)
				if err != nil || !ok {
					t.Fatalf("\t%s\tTest %d:\tShould be solved: %v", failed, testID, err)
				}

				exp := []chain.EventKind{chain.EventBlockCreated, chain.EventMiningStarted, chain.EventBlockMined}
				if !slices.Equal(kinds, exp) {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, kinds)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, exp)
					t.Fatalf("\t%s\tTest %d:\tShould report the mining events.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould mine the block and report it.", success, testID)

				if _, err := c.MineLatest(context.Background(), difficulty); !errors.Is(err, chain.ErrAlreadyMined) {
					t.Fatalf("\t%s\tTest %d:\tShould refuse to mine a mined block, got %v.", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould refuse to mine a mined block.", success, testID)
			}
		}
	}
}

func Test_Commit(t *testing.T) {
	t.Log("Given the need to commit blocks mined outside the chain.")
	{
		c, err := chain.New[string](nil)
		if err != nil {
			t.Fatalf("Should be able to construct the chain: %v", err)
		}

		b, err := c.ExtendChain()
		if err != nil {
			t.Fatalf("Should be able to extend the chain: %v", err)
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen the mined block was changed.", testID)
		{
			mined, err := chain.MineBlock(context.Background(), b, 2, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %v", failed, testID, err)
			}

			tampered := mined
			tampered.Hash = strings.Repeat("0", 64)
			if err := c.Commit(tampered, 2); !errors.Is(err, chain.ErrBlockMismatch) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the block, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)

			testID++
			t.Logf("\tTest %d:\tWhen the difficulty is not met.", testID)
			if err := c.Commit(mined, pow.Width); !errors.Is(err, chain.ErrNotSolved) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the block, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)

			testID++
			t.Logf("\tTest %d:\tWhen the block is valid.", testID)
			if err := c.Commit(mined, 2); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould commit the block: %v", failed, testID, err)
			}
			if err := c.Commit(mined, 2); !errors.Is(err, chain.ErrAlreadyMined) {
				t.Fatalf("\t%s\tTest %d:\tShould not commit twice, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould commit the block once.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the block does not exist.", testID)
		{
			if _, err := c.Mine(context.Background(), 99, 1); !errors.Is(err, chain.ErrBlockNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould get a not found error, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a not found error.", success, testID)
		}
	}
}

func Test_WireForm(t *testing.T) {
	t.Log("Given the need to exchange blocks as JSON.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen encoding the genesis block.", testID)
		{
			c, err := chain.New[string](nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the chain: %v", failed, testID, err)
			}
			genesis, _ := c.LastBlock()

			data, err := json.Marshal(genesis)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to encode the block: %v", failed, testID, err)
			}

			for _, frag := range []string{`"previousHash":null`, `"nonce":null`, `"transactions":[]`, `"hash":"` + genesis.Hash + `"`} {
				if !strings.Contains(string(data), frag) {
					t.Fatalf("\t%s\tTest %d:\tShould contain %s in %s.", failed, testID, frag, data)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould use the wire field names.", success, testID)

			// The digest of the wire form is the block digest.
			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode into a map: %v", failed, testID, err)
			}

			hash, err := digest.Hash(raw)
			if err != nil || hash != genesis.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould reproduce the block digest from the wire form: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reproduce the block digest from the wire form.", success, testID)

			var back chain.Block[string]
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the block: %v", failed, testID, err)
			}

			if back.Hash != genesis.Hash || back.PrevBlockHash != chain.NoHash || back.Nonce != "" {
				t.Fatalf("\t%s\tTest %d:\tShould decode the same block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould decode the same block.", success, testID)
		}
	}
}

func Test_Peers(t *testing.T) {
	t.Log("Given the need to keep a set of peers.")
	{
		c, err := chain.New[string](nil)
		if err != nil {
			t.Fatalf("Should be able to construct the chain: %v", err)
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen adding the same peer twice.", testID)
		{
			c.AddPeer("localhost:9080")
			c.AddPeer("localhost:9080")

			if len(c.Peers()) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould keep a single peer, got %v.", failed, testID, c.Peers())
			}
			t.Logf("\t%s\tTest %d:\tShould keep a single peer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen adding a second peer.", testID)
		{
			c.AddPeer("localhost:9001")

			exp := []string{"localhost:9001", "localhost:9080"}
			if !slices.Equal(c.Peers(), exp) {
				t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, c.Peers())
				t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould list both peers.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould list both peers.", success, testID)
		}
	}
}

func Test_EventJSON(t *testing.T) {
	t.Log("Given the need to stream chain events to clients.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen encoding a stopped mining event.", testID)
		{
			ev := chain.Event{
				Kind:     chain.EventMiningStopped,
				Index:    3,
				Attempts: 42,
				Duration: 2 * time.Second,
				Err:      pow.ErrCancelled,
			}

			data, err := json.Marshal(ev)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to encode the event: %v", failed, testID, err)
			}

			exp := `{"kind":"mining-stopped","index":3,"attempts":42,"duration":"2s","error":"` + pow.ErrCancelled.Error() + `"}`
			if string(data) != exp {
				t.Fatalf("\t%s\tTest %d:\tShould encode as %s, got %s.", failed, testID, exp, data)
			}
			t.Logf("\t%s\tTest %d:\tShould encode the event fields.", success, testID)
		}
	}
}
