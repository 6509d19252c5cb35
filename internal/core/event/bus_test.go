package event

import "testing"

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []ZombieDied
	Subscribe(b, func(ev ZombieDied) { got = append(got, ev) })

	Emit(b, ZombieDied{Name: "Zombie - 1", Kills: 1})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatal("event delivered in the tick it was emitted")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0].Kills != 1 {
		t.Fatalf("unexpected delivery: %+v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Errorf("event redelivered after a second swap: %d", len(got))
	}
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	var waves, attacks int
	Subscribe(b, func(WaveSpawned) { waves++ })
	Subscribe(b, func(ZombieAttacked) { attacks++ })

	Emit(b, WaveSpawned{Wave: 1, Count: 2})
	Emit(b, ZombieAttacked{Damage: 5})
	Emit(b, ZombieAttacked{Damage: 5})
	b.SwapBuffers()
	b.DispatchAll()

	if waves != 1 || attacks != 2 {
		t.Errorf("waves=%d attacks=%d, want 1 and 2", waves, attacks)
	}
}

func TestEmitOnNilBus(t *testing.T) {
	var b *Bus
	Emit(b, ZombieAttacked{Damage: 1}) // must not panic
}

func TestBusPreservesEmissionOrder(t *testing.T) {
	b := NewBus()
	var order []string
	Subscribe(b, func(e ZombiePromoted) { order = append(order, "promoted:"+e.Name) })
	Subscribe(b, func(e ZombieDied) { order = append(order, "died:"+e.Name) })

	Emit(b, ZombiePromoted{Name: "a"})
	Emit(b, ZombieDied{Name: "a"})
	Emit(b, ZombiePromoted{Name: "b"})
	Emit(b, ShotFired{Weapon: "pistol"}) // no handler
	if b.Pending() != 4 {
		t.Fatalf("Pending = %d, want 4", b.Pending())
	}
	b.SwapBuffers()
	if b.Pending() != 0 {
		t.Fatalf("Pending after swap = %d", b.Pending())
	}
	b.DispatchAll()

	want := []string{"promoted:a", "died:a", "promoted:b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
