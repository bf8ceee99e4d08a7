// Package brick provides the fragment builders used to assemble circuits.
//
// Every brick names its neurons <brick>_<Role>[_<Index>] so that spike
// records can be decoded by name after finalization. The role that carries
// a brick's answer is documented on each type together with its decode
// contract.
//
// Bricks are plain structs. New builds one from a type name and a parameter
// map, which is how circuit definitions and scenarios instantiate them.
package brick
