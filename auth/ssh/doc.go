// Package ssh manages the SSH keypairs that back ghup profiles.
//
// It generates ed25519 keys in OpenSSH format, imports existing private
// keys, enforces private-key permissions, and inspects public keys and the
// running ssh-agent.
//
// # Generating a key
//
//	m := ssh.NewManager()
//	kp, err := m.Generate("~/.ssh/id_ed25519_work", "me@work.example", false)
//	if errors.Is(err, ssh.ErrKeyExists) {
//	    // ask before overwriting
//	}
//	fmt.Println(kp.Fingerprint) // SHA256:...
//
// # Importing a key
//
//	kp, err := m.Import("/tmp/id_work", "~/.ssh/id_ed25519_work", false)
//
// Encrypted keys are accepted when the public half is recoverable, either
// from the OpenSSH container or from a companion ".pub" file.
//
// # Agent checks
//
//	conn, err := ssh.GetAgent()
//	if err == nil {
//	    defer conn.Close()
//	    loaded, _ := ssh.AgentHasKey(conn, kp.Fingerprint)
//	}
package ssh
