package graph

import "testing"

func TestRegisterNodeTypeIsIdempotentByName(t *testing.T) {
	system := NewNodeSystem()
	cfg := newTestSrcConfig()
	id1 := system.RegisterNodeType("Test/Src", func() NodeType { return &testSrc{cfg: cfg} })
	id2 := system.RegisterNodeType("Test/Src", func() NodeType { return &testSrc{cfg: cfg} })
	if id1 != id2 {
		t.Errorf("re-registering an existing name should return the same id: %d != %d", id1, id2)
	}
}

func TestTypeIDByNameAndTypeName(t *testing.T) {
	system, srcID, _ := newTestSystem()
	if system.TypeIDByName("Test/Src") != srcID {
		t.Errorf("TypeIDByName should resolve a registered name")
	}
	if system.TypeIDByName("NoSuch") != InvalidNodeTypeID {
		t.Errorf("TypeIDByName(unregistered) should return InvalidNodeTypeID")
	}
	if system.TypeName(srcID) != "Test/Src" {
		t.Errorf("TypeName = %q, want Test/Src", system.TypeName(srcID))
	}
}

func TestNewConstructsFromFactory(t *testing.T) {
	system, srcID, _ := newTestSystem()
	nt := system.New(srcID)
	if nt == nil {
		t.Fatalf("New should construct an instance for a registered type")
	}
	if system.New(InvalidNodeTypeID) != nil {
		t.Errorf("New(unregistered) should return nil")
	}
}

func TestTypeNamesInRegistrationOrder(t *testing.T) {
	system, _, _ := newTestSystem()
	names := system.TypeNames()
	if len(names) != 2 || names[0] != "Test/Src" || names[1] != "Test/Sink" {
		t.Errorf("TypeNames = %v, want [Test/Src Test/Sink]", names)
	}
}
