/*

Package base provides base data structures and functions for biasmf.

The base data structures and functions include:

* Identifier Index

* Random Generator

* Error Kinds

* Panic Recovery

*/
package base
