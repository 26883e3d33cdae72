package simulator

import "github.com/kiranshivaraju/qwatch/pkg/models"

// Fixed sampling catalogs. All are non-empty, so sampling never fails.
var (
	Backends = []string{
		"ibm_sherbrooke", "ibm_brisbane", "ibm_kyoto", "ibm_osaka",
		"ibm_torino", "ibm_quebec", "ibm_hanoi", "ibm_prague",
	}

	Users = []string{
		"alice_chen", "bob_watson", "carol_martinez", "david_kim",
		"eva_johnson", "frank_zhang", "grace_taylor", "henry_patel",
	}

	Circuits = []string{
		"Quantum Fourier Transform", "Grover Search", "Shor Factorization",
		"Variational Quantum Eigensolver", "Quantum Approximate Optimization",
		"Quantum Teleportation", "Bell State Preparation", "Quantum Error Correction",
		"Quantum Random Walk", "Quantum Machine Learning",
	}

	QubitCounts = []int{5, 16, 27, 65, 127}
	ShotCounts  = []int{1024, 2048, 4096, 8192}
)

// arrivalStatuses are the states a job can enter the queue in during a tick.
var arrivalStatuses = []models.JobStatus{models.JobStatusQueued, models.JobStatusRunning}
