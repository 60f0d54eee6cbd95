package world

// integrate advances every dynamic body with semi-implicit Euler: velocity
// is updated from the force first, then position from the new velocity.
// Static bodies are left untouched.
func (w *World) integrate(dt float64) {
	for _, b := range w.bodies {
		if b.Mass <= 0 {
			continue
		}

		b.AngularVelocity += b.AngularForce * b.InvInertia * dt
		b.Angle += b.AngularVelocity * dt

		b.Velocity = b.Velocity.Add(b.Force.Mul(dt * b.InvMass))
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
	}
}
