/*

Package model provides hyper-parameter management shared by rating models.

Models live in sub-packages:

	* mf: biased matrix factorization fitted by full batch gradient descent with momentum

*/
package model
