// Package domain models near-Earth objects, their physical parameters, and
// first-order impact effects.
//
// # Data Sources
//
// NEO records come from NASA's Near Earth Object Web Service (NeoWs):
// identifier, name, estimated diameter range, absolute magnitude H, hazard
// flag, and close-approach events. Physical parameters come from two catalogs,
// queried in this order:
//
//	ssodnet  IMCCE SsODNet ssoCard (diameter, density, mass, taxonomy, bibcode)
//	sbdb     JPL Small-Body Database phys-par (diameter, density, GM, spec_B/spec_T)
//
// # Resolution
//
// Each field is resolved independently: the first catalog that supplies it
// wins, and a catalog error only skips that catalog. Whatever is still
// missing is estimated:
//
//	diameter  mean of the NeoWs range, else 1329/√albedo · 10^(−H/5) km
//	density   typical bulk density of the taxonomy class, else the default
//	mass      ρ · (4/3)π(D/2)³ with ρ in kg/m³ and D in m
//
// The result's Source is the least authoritative tag among diameter, density,
// and mass (estimate < sbdb < ssodnet). A derived mass counts as estimate.
//
// # Impact Effects
//
// Energy: KE = ½mv², p = mv, 1 kt TNT = 4.184e12 J.
//
// Crater: transient diameter by pi-scaling (Collins, Melosh & Marcus 2005),
//
//	D_tc = 1.161 (ρi/ρt)^(1/3) L^0.78 v^0.44 g^−0.22 sin(θ)^(1/3)
//
// with g = 9.81 m/s². The final diameter is 1.25 D_tc for every size. Craters
// below 4 km are simple (depth 0.2 D), larger ones complex (depth 0.4 D^0.3).
//
// Ocean (water and ice targets): initial amplitude 0.1 D_tc, 1/r spreading
// beyond a near field of radius D_tc with exp(−r/λ) dispersion loss, Green's
// law shoaling (h_deep/h_coast)^(1/4), run-up as a multiple of the coastal
// amplitude.
//
// Seismic: E_s = coupling · KE, Mw = (log10 E_s − 4.8)/1.5.
//
// All quantities are screening estimates. Atmospheric entry, bathymetry, and
// orbital propagation are not modeled.
package domain
