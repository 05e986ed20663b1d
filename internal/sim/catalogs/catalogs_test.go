package catalogs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/daveslutzkin/grind-sub004/internal/protocol"
)

func TestDefault_ValidAndDigestStable(t *testing.T) {
	a := Default()
	if err := a.Validate(); err != nil {
		t.Fatalf("default catalogs invalid: %v", err)
	}
	b := Default()
	if a.Digest == "" || a.Digest != b.Digest {
		t.Fatalf("digest unstable: %q vs %q", a.Digest, b.Digest)
	}
}

func TestLoad_MissingDirUsesDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Digest != Default().Digest {
		t.Fatalf("no-override load changed the digest")
	}
}

func TestLoad_OverrideReplacesSection(t *testing.T) {
	dir := t.TempDir()
	body := `{"contracts":[{"contract_id":"x-1","guild":"MINING","requirements":{"IRON_ORE":1},"reputation_reward":1}]}`
	if err := os.WriteFile(filepath.Join(dir, "catalogs.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Contracts.ByID) != 1 {
		t.Fatalf("contracts not replaced: %d entries", len(c.Contracts.ByID))
	}
	if _, ok := c.Contracts.ByID["x-1"]; !ok {
		t.Fatalf("override contract missing")
	}
	if c.Digest == Default().Digest {
		t.Fatalf("digest did not change with content")
	}
}

func TestLoad_RejectsDanglingItemRefs(t *testing.T) {
	dir := t.TempDir()
	body := `{"contracts":[{"contract_id":"x-1","guild":"MINING","requirements":{"NO_SUCH_ITEM":1},"reputation_reward":1}]}`
	if err := os.WriteFile(filepath.Join(dir, "catalogs.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected validation error for unknown item reference")
	}
}

func TestMaterialsFor_FiltersBySkillAndDistance(t *testing.T) {
	c := Default()
	d1 := c.MaterialsFor(protocol.SkillMining, 1)
	for _, m := range d1 {
		if m.Skill != protocol.SkillMining || m.MinDistance > 1 {
			t.Fatalf("bad material in distance-1 mining set: %+v", m)
		}
	}
	d3 := c.MaterialsFor(protocol.SkillMining, 3)
	if len(d3) <= len(d1) {
		t.Fatalf("deeper areas should unlock more materials: %d vs %d", len(d3), len(d1))
	}
}

func TestMobsFor_SortedAndFiltered(t *testing.T) {
	c := Default()
	mobs := c.MobsFor(1)
	if len(mobs) == 0 {
		t.Fatalf("no distance-1 mobs")
	}
	for _, m := range mobs {
		if m.MinDistance > 1 {
			t.Fatalf("mob %s should not spawn at distance 1", m.MobID)
		}
	}
}
